package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

var (
	AppLogger    *log.Logger
	AccessLogger *log.Logger
	ErrorLogger  *log.Logger

	logLevel      string
	appLogFile    *os.File
	accessLogFile *os.File
	initialized   bool
)

// InitGlobalLoggers sets up the application, HTTP access and error loggers.
// App and access logs go to files; errors always go to stderr as well.
func InitGlobalLoggers(appLogPath, accessLogPath, level string) error {
	if initialized && appLogFile != nil && accessLogFile != nil && strings.ToUpper(level) == logLevel {
		return nil
	}
	if appLogFile != nil {
		appLogFile.Close()
		appLogFile = nil
	}
	if accessLogFile != nil {
		accessLogFile.Close()
		accessLogFile = nil
	}

	logLevel = strings.ToUpper(level)
	if logLevel == "" {
		logLevel = "INFO"
	}

	ErrorLogger = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)

	actualAppLogPath := appLogPath
	appLogDir := filepath.Dir(appLogPath)
	var appLogWriter io.Writer = io.Discard
	if err := os.MkdirAll(appLogDir, 0750); err != nil {
		ErrorLogger.Printf("Failed to create app log directory %s: %v. App logs (Info/Debug) will be discarded.", appLogDir, err)
		actualAppLogPath = "(discarded)"
	} else {
		var errApp error
		appLogFile, errApp = os.OpenFile(appLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if errApp != nil {
			ErrorLogger.Printf("Failed to open app log file %s: %v. App logs (Info/Debug) will be discarded.", appLogPath, errApp)
			actualAppLogPath = "(discarded)"
		} else {
			appLogWriter = appLogFile
		}
	}
	AppLogger = log.New(appLogWriter, "APP: ", log.Ldate|log.Ltime|log.Lshortfile)

	actualAccessLogPath := accessLogPath
	accessLogDir := filepath.Dir(accessLogPath)
	var accessLogWriter io.Writer = io.Discard
	if err := os.MkdirAll(accessLogDir, 0750); err != nil {
		ErrorLogger.Printf("Failed to create access log directory %s: %v. Access logs will be discarded.", accessLogDir, err)
		actualAccessLogPath = "(discarded)"
	} else {
		var errAccess error
		accessLogFile, errAccess = os.OpenFile(accessLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if errAccess != nil {
			ErrorLogger.Printf("Failed to open access log file %s: %v. Access logs will be discarded.", accessLogPath, errAccess)
			actualAccessLogPath = "(discarded)"
		} else {
			accessLogWriter = accessLogFile
		}
	}
	AccessLogger = log.New(accessLogWriter, "HTTP: ", log.Ldate|log.Ltime)

	if !initialized {
		AppLogger.Printf("App logger initialized. Log level: %s. Output file: %s", logLevel, actualAppLogPath)
		AccessLogger.Printf("Access logger initialized. Output file: %s", actualAccessLogPath)
	}
	initialized = true
	return nil
}

func Info(format string, v ...interface{}) {
	if AppLogger != nil && (logLevel == "INFO" || logLevel == "DEBUG") {
		AppLogger.Printf(format, v...)
	}
}

func Debug(format string, v ...interface{}) {
	if AppLogger != nil && logLevel == "DEBUG" {
		AppLogger.Printf(format, v...)
	}
}

func Warn(format string, v ...interface{}) {
	if AppLogger != nil && (logLevel == "WARN" || logLevel == "INFO" || logLevel == "DEBUG") {
		AppLogger.Printf(format, v...)
	}
}

func Error(format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	if ErrorLogger != nil {
		ErrorLogger.Print(message)
	}
	if AppLogger != nil && appLogFile != nil {
		AppLogger.Print(message)
	}
}

func Fatal(format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	if ErrorLogger != nil {
		ErrorLogger.Fatal(message)
	} else {
		log.Fatal(message)
	}
}

// Access records one served HTTP request in the access log.
func Access(format string, v ...interface{}) {
	if AccessLogger != nil {
		AccessLogger.Printf(format, v...)
	}
}

func CloseLogFiles() {
	if appLogFile != nil {
		AppLogger.Println("Closing app log file.")
		appLogFile.Close()
		appLogFile = nil
	}
	if accessLogFile != nil {
		accessLogFile.Close()
		accessLogFile = nil
	}
	initialized = false
}
