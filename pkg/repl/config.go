package repl

// Config holds configuration for the REPL environment.
type Config struct {
	// Prompt is printed before each line is read.
	Prompt string
	// Banner prints a one-line greeting on start.
	Banner bool
	// Echo repeats each input line, for scripts fed from a file.
	Echo bool
}

// DefaultConfig returns the interactive configuration.
func DefaultConfig() Config {
	return Config{
		Prompt: ">> ",
		Banner: true,
	}
}

// ScriptConfig returns the configuration used to replay a file.
func ScriptConfig() Config {
	return Config{Echo: true}
}
