// Package logger provides centralized logging for the portal.
// File: logger/logger.go
package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// ------------------- global loggers -------------------

// four logger levels accessible throughout the application
var (
	Info  *log.Logger
	Warn  *log.Logger
	Error *log.Logger
	Debug *log.Logger
)

const flags = log.Ldate | log.Ltime | log.Lshortfile

// ------------------- logger initialization -------------------

// InitLogger (re)configures the loggers. With an empty dir the loggers write to
// stdout only; otherwise dir is created and a timestamped log file inside it
// receives a copy of every line.
func InitLogger(dir string) error {
	var out io.Writer = os.Stdout

	if dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
		logFileName := filepath.Join(dir, time.Now().Format("2006-01-02_15-04-05")+".log")
		file, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) // #nosec
		if err != nil {
			return err
		}
		out = io.MultiWriter(os.Stdout, file)
	}

	setOutput(out)
	return nil
}

func setOutput(out io.Writer) {
	Info = log.New(out, "INFO: ", flags)
	Warn = log.New(out, "WARN: ", flags)
	Error = log.New(out, "ERROR: ", flags)
	Debug = log.New(out, "DEBUG: ", flags)
}

// SetLogLevel discards Debug output in production.
func SetLogLevel(env string) {
	if env == "production" {
		Debug.SetOutput(io.Discard)
	}
}

// init wires stdout loggers so packages and tests can log before main runs.
func init() {
	setOutput(os.Stdout)
}
