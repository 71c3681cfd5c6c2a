package helpers

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger returns the process logger. Development gets colored text at debug
// level; every other environment logs JSON at info, tagged with app and env.
func NewLogger(appName, env string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	switch env {
	case "development", "dev", "local":
		l.SetLevel(logrus.DebugLevel)
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		l.SetLevel(logrus.InfoLevel)
		l.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{logrus.FieldKeyMsg: "message"},
		})
	}
	l.AddHook(staticFields{"app": appName, "env": env})
	return l
}

// NewDiscardLogger returns a logger that writes nowhere.
func NewDiscardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// staticFields stamps the same fields on every entry that does not set them.
type staticFields logrus.Fields

func (staticFields) Levels() []logrus.Level { return logrus.AllLevels }

func (f staticFields) Fire(e *logrus.Entry) error {
	for k, v := range f {
		if _, ok := e.Data[k]; !ok {
			e.Data[k] = v
		}
	}
	return nil
}
