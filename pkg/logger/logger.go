package logger

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// New создает JSON-логгер диспетчерской службы.
// Метки времени в RFC3339 с наносекундами: переходы назначения и проверки SLA
// различаются миллисекундами.
func New(logLevel string) *logrus.Logger {
	log := logrus.New()

	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
	})

	log.SetOutput(os.Stdout)

	// Уровень логирования
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel // Уровень по умолчанию, если передан некорректный
		log.Warnf("Unknown log level %q, falling back to info", logLevel)
	}
	log.SetLevel(level)
	return log
}
