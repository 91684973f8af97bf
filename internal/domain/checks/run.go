package checks

// RunRequest untuk Runner. Path must already be canonical
// (absolute, symlinks resolved) when it reaches the runner.
type RunRequest struct {
	Path string
}

// RunResult hasil dari Runner. LogPath points at the capture sink
// holding the combined stdout+stderr of the check; the caller owns
// the sink and is responsible for deleting it.
type RunResult struct {
	ExitCode   int
	LogPath    string
	DurationMS int64
}
