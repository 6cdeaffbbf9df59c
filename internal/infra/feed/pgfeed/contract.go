package pgfeed

import "github.com/m04kA/SMC-CourtBooking/pkg/dbmetrics"

// DBExecutor соединение, через которое выполняется pg_notify
type DBExecutor = dbmetrics.DBExecutor

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
