package rpc

const MorphServiceName = "codemorph.v1.MorphService"

const (
	CreateSessionProcedure  = "/" + MorphServiceName + "/CreateSession"
	GetSessionProcedure     = "/" + MorphServiceName + "/GetSession"
	UpdateSessionProcedure  = "/" + MorphServiceName + "/UpdateSession"
	ToggleGoalProcedure     = "/" + MorphServiceName + "/ToggleGoal"
	LoadSampleProcedure     = "/" + MorphServiceName + "/LoadSample"
	TransformProcedure      = "/" + MorphServiceName + "/Transform"
	RunCodeProcedure        = "/" + MorphServiceName + "/RunCode"
	ClearRunProcedure       = "/" + MorphServiceName + "/ClearRun"
	ExportOutputProcedure   = "/" + MorphServiceName + "/ExportOutput"
	ListExportsProcedure    = "/" + MorphServiceName + "/ListExports"
	ListGoalsProcedure      = "/" + MorphServiceName + "/ListGoals"
	DetectLanguageProcedure = "/" + MorphServiceName + "/DetectLanguage"
)
