package history

import "errors"

var (
	ErrDuplicateReport = errors.New("diagnosis report already recorded")
	ErrReportNotFound  = errors.New("no diagnosis report recorded")
)
