package apptest

import "fmt"

var (
	ErrApplicationMissing = fmt.Errorf("application missing")
	ErrNoResponse         = fmt.Errorf("application returned no response")
	ErrFileMoved          = fmt.Errorf("uploaded file has already been moved")
	ErrScenariosLoaded    = fmt.Errorf("scenarios had been loaded")
	ErrRuleNotBoolean     = fmt.Errorf("rule did not evaluate to a boolean")
	ErrRuleNotSatisfied   = fmt.Errorf("rule not satisfied")
)
