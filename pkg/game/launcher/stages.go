package launcher

import "fmt"

// Stage is a step of the launch state machine. Stages run in declaration
// order and never go back.
type Stage string

const (
	StageValidate         Stage = "validate"
	StageExtractNatives   Stage = "extract-natives"
	StageResolveRuntime   Stage = "resolve-runtime"
	StageBuildClasspath   Stage = "build-classpath"
	StageBuildArguments   Stage = "build-arguments"
	StageResolveMainClass Stage = "resolve-main-class"
	StageSpawn            Stage = "spawn"
)

// StageError tells callers which stage a launch stopped at.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("launch failed at %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
