package logger

import "log/slog"

type Backend string

const (
	BackendStd Backend = "std" // text output, meant for dev
	BackendZap Backend = "zap" // sampled JSON via slog-zap
)

type Config struct {
	// Metadata attached to every record.
	Service    string
	Version    string
	InstanceID string

	// Output control.
	Level   slog.Level
	Env     Env
	Backend Backend // default: zap for stage/prod, std for dev
	Debug   bool

	// Zap burst sampling.
	SampleInitial    int
	SampleThereafter int

	// Caller annotation.
	AddSource bool
}
