// Package extract unpacks the source archive, either with an external
// archiver found on the search path or natively.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/qtforge/internal/domain/platform"
	"github.com/felixgeelhaar/qtforge/internal/domain/stage"
	"github.com/felixgeelhaar/qtforge/internal/ports"
)

// Template placeholders, substituted inside each argument.
const (
	ArchiveToken     = "{archive}"
	DestinationToken = "{destination}"
)

// DefaultTemplate is the 7-Zip argument list: extract with full paths,
// assume yes, recurse.
var DefaultTemplate = []string{"x", "-y", ArchiveToken, "-o" + DestinationToken, "-r"}

// DefaultCandidates are the archiver names searched for, in order.
var DefaultCandidates = []string{"7z", "7za", "7zr"}

// Extractor unpacks an archive into a destination directory.
type Extractor interface {
	Extract(ctx context.Context, archive, destination string) stage.Result
}

// Method selects the Extractor implementation.
type Method string

const (
	// MethodExternal runs an archiver found on the search path.
	MethodExternal Method = "external"
	// MethodBuiltin unpacks zip and tar archives in-process.
	MethodBuiltin Method = "builtin"
)

// ParseMethod parses an extraction method name. Empty means external.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case "", MethodExternal:
		return MethodExternal, nil
	case MethodBuiltin:
		return MethodBuiltin, nil
	default:
		return "", fmt.Errorf("unknown extractor %q (expected external or builtin)", s)
	}
}

// Options configures the external extractor.
type Options struct {
	// Candidates are executable names without the platform suffix.
	Candidates []string
	// Template is the argument list; see ArchiveToken and DestinationToken.
	Template []string
	// SearchPath is a PATH-like list of directories to search.
	SearchPath string
}

// DefaultOptions returns the 7-Zip options searching searchPath.
func DefaultOptions(searchPath string) Options {
	return Options{
		Candidates: append([]string(nil), DefaultCandidates...),
		Template:   append([]string(nil), DefaultTemplate...),
		SearchPath: searchPath,
	}
}

// Validate checks that the template references both placeholders.
func (o Options) Validate() error {
	if len(o.Candidates) == 0 {
		return fmt.Errorf("extractor candidates must not be empty")
	}
	joined := strings.Join(o.Template, " ")
	for _, tok := range []string{ArchiveToken, DestinationToken} {
		if !strings.Contains(joined, tok) {
			return fmt.Errorf("extractor template %q is missing %s", joined, tok)
		}
	}
	return nil
}

// External extracts by running an archiver such as 7-Zip.
type External struct {
	profile platform.Profile
	opts    Options
	fs      ports.FileSystem
	runner  ports.CommandRunner
	logger  ports.Logger
}

// NewExternal creates an External extractor. Zero-valued options fall back
// to the defaults.
func NewExternal(profile platform.Profile, opts Options, fs ports.FileSystem, runner ports.CommandRunner, logger ports.Logger) *External {
	if len(opts.Candidates) == 0 {
		opts.Candidates = append([]string(nil), DefaultCandidates...)
	}
	if len(opts.Template) == 0 {
		opts.Template = append([]string(nil), DefaultTemplate...)
	}
	return &External{
		profile: profile,
		opts:    opts,
		fs:      fs,
		runner:  runner,
		logger:  logger,
	}
}

// Candidates returns the executable names searched for on this platform.
func (e *External) Candidates() []string {
	names := make([]string, len(e.opts.Candidates))
	for i, c := range e.opts.Candidates {
		names[i] = e.profile.Executable(c)
	}
	return names
}

// Locate returns the path of the first candidate found. Directories are
// searched in order and every candidate is tried in each directory.
func (e *External) Locate() (string, error) {
	candidates := e.Candidates()
	for _, dir := range e.profile.SplitList(e.opts.SearchPath) {
		for _, name := range candidates {
			path := e.profile.Join(dir, name)
			if e.fs.Exists(path) && !e.fs.IsDir(path) {
				return path, nil
			}
		}
	}
	return "", stage.New(stage.KindToolNotFound, "no extraction tool found on the search path").
		WithCandidates(candidates).
		WithSuggestion("install 7-Zip and add it to PATH, or set extractor: builtin for zip and tar archives")
}

// Compose builds the archiver command. Placeholders are replaced inside
// individual arguments; no shell line is ever assembled.
func (e *External) Compose(tool, archive, destination string) ports.Command {
	r := strings.NewReplacer(ArchiveToken, archive, DestinationToken, destination)
	args := make([]string, len(e.opts.Template))
	for i, arg := range e.opts.Template {
		args[i] = r.Replace(arg)
	}
	return ports.NewCommand(tool, args...)
}

// Extract locates the archiver and runs it. The destination is not cleaned
// beforehand; overwriting earlier output is left to the archiver.
func (e *External) Extract(ctx context.Context, archive, destination string) stage.Result {
	tool, err := e.Locate()
	if err != nil {
		return stage.Failed(stage.Unpacked, stage.From(err, stage.KindToolNotFound, "no extraction tool found"))
	}

	cmd := e.Compose(tool, archive, destination)
	e.logger.Info(ctx, "extracting sources", ports.Cmd(cmd))

	result, err := e.runner.Run(ctx, cmd)
	if err != nil {
		return stage.Failed(stage.Unpacked, stage.New(stage.KindExtractionFailed, "archiver could not be started").
			WithCommand(cmd.String(), result.ExitCode).
			WithUnderlying(err)).WithCommand(cmd.String())
	}
	if !result.Success() {
		return stage.Failed(stage.Unpacked, stage.New(stage.KindExtractionFailed, "archiver exited with an error").
			WithCommand(cmd.String(), result.ExitCode).
			WithSuggestion("check the archive is complete and the destination is writable")).WithCommand(cmd.String())
	}

	return stage.Succeeded(stage.Unpacked).WithCommand(cmd.String())
}

var _ Extractor = (*External)(nil)
