package run

import "context"

// Stage identifies one step of the picking pipeline.
type Stage string

const (
	StageCamInit   Stage = "CAM_INIT"
	StageDriveInit Stage = "DRIVE_INIT"
	StageDriveHome Stage = "DRIVE_HOME"
	StageCapture   Stage = "IMG_CAP"
	StageProcess   Stage = "IMG_PROC"
	StageSampling  Stage = "SAMP_CYC"
	StageSaveTable Stage = "SAV_TAB"
	StageTerminate Stage = "TERM"
	StageDone      Stage = "DONE"
)

// pipelineStage is one entry of the fixed stage table. Stages with abortable
// set are skipped once the drive abort flag latches; setup stages before the
// first hardware motion always run so teardown has something to release.
type pipelineStage struct {
	name      Stage
	status    string
	abortable bool
	fn        func(context.Context) error
}

func (w *Worker) stageTable() []pipelineStage {
	return []pipelineStage{
		{StageCamInit, "Configuring camera", false, w.stageCameraInit},
		{StageDriveInit, "Connecting drive controller", false, w.stageDriveInit},
		{StageDriveHome, "Homing drives", true, w.stageDriveHome},
		{StageCapture, "Imaging dishes", true, w.stageCapture},
		{StageProcess, "Locating colonies", true, w.stageProcess},
		{StageSampling, "Sampling colonies", true, w.stageSampling},
	}
}
