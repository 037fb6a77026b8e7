package cli

var (
	RenderAnalysis      = renderAnalysis
	RenderFixAll        = renderFixAll
	ErrFixTarget        = errFixTarget
	ErrNothingToMigrate = errNothingToMigrate
)
