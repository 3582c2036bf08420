package config

const (
	defaultOutputDir    = "~/.local/share/slate/runs"
	defaultGeometryFile = "~/.config/slate/geometry.toml"
	defaultLockFile     = "~/.local/share/slate/slate.lock"
	defaultGrabber      = "slate-grab"
	defaultAnalyzer     = "slate-detect"
	defaultCameraDevice = "/dev/video0"
	defaultCameraWidth  = 3264
	defaultCameraHeight = 2448
	defaultExposure     = 0.05
	defaultAttempts     = 3
	defaultSerialPort   = "/dev/ttyUSB0"
	defaultBaudRate     = 115200
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"

	// Motion defaults in millimeters; the drive adapter scales to
	// micrometers before submission.
	defaultPickDepth      = 58.0
	defaultDepositDepth   = 42.0
	defaultCruiseDepth    = 0.0
	defaultSterilizeDepth = 60.0
	defaultParkX          = 450.0
	defaultParkY          = -90.0
	defaultParkZ          = 0.0

	defaultDishCount        = 6
	defaultSterilizerDwell  = 20.0
	defaultCoolingSeconds   = 5.0
	defaultWellCapacity     = 96
	maxDishCount            = 6
	maxHoldSeconds          = 1000.0
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:    defaultOutputDir,
			GeometryFile: defaultGeometryFile,
			LockFile:     defaultLockFile,
		},
		Camera: Camera{
			Grabber:  defaultGrabber,
			Device:   defaultCameraDevice,
			Width:    defaultCameraWidth,
			Height:   defaultCameraHeight,
			Exposure: defaultExposure,
			Attempts: defaultAttempts,
		},
		Detector: Detector{
			Analyzer: defaultAnalyzer,
			Annotate: true,
		},
		Drive: Drive{
			Port:     defaultSerialPort,
			BaudRate: defaultBaudRate,
		},
		Motion: Motion{
			PickDepth:      defaultPickDepth,
			DepositDepth:   defaultDepositDepth,
			CruiseDepth:    defaultCruiseDepth,
			SterilizeDepth: defaultSterilizeDepth,
			ParkX:          defaultParkX,
			ParkY:          defaultParkY,
			ParkZ:          defaultParkZ,
		},
		Sampling: Sampling{
			DishCount:              defaultDishCount,
			SterilizerDwellSeconds: defaultSterilizerDwell,
			CoolingSeconds:         defaultCoolingSeconds,
			WellCapacity:           defaultWellCapacity,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
