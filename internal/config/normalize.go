package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCamera()
	c.normalizeDrive()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OutputDir, err = ExpandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.GeometryFile, err = ExpandPath(c.Paths.GeometryFile); err != nil {
		return fmt.Errorf("paths.geometry_file: %w", err)
	}
	if c.Paths.LockFile, err = ExpandPath(c.Paths.LockFile); err != nil {
		return fmt.Errorf("paths.lock_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeCamera() {
	c.Camera.Grabber = strings.TrimSpace(c.Camera.Grabber)
	if c.Camera.Grabber == "" {
		c.Camera.Grabber = defaultGrabber
	}
	c.Camera.Device = strings.TrimSpace(c.Camera.Device)
	if c.Camera.Device == "" {
		c.Camera.Device = defaultCameraDevice
	}
	if c.Camera.Width <= 0 {
		c.Camera.Width = defaultCameraWidth
	}
	if c.Camera.Height <= 0 {
		c.Camera.Height = defaultCameraHeight
	}
	if c.Camera.Attempts <= 0 {
		c.Camera.Attempts = defaultAttempts
	}
	c.Detector.Analyzer = strings.TrimSpace(c.Detector.Analyzer)
	if c.Detector.Analyzer == "" {
		c.Detector.Analyzer = defaultAnalyzer
	}
}

func (c *Config) normalizeDrive() {
	c.Drive.Port = strings.TrimSpace(c.Drive.Port)
	if c.Drive.Port == "" {
		c.Drive.Port = defaultSerialPort
	}
	if c.Drive.BaudRate <= 0 {
		c.Drive.BaudRate = defaultBaudRate
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
