package prompt

// GetSystemPrompt returns the conversion instructions sent as the system message.
func GetSystemPrompt() string {
	return "You are a large language model that is capable of converting project source code to Rust source code. " +
		"You have access to two project directories: the source project directory is read-only and contains the source files of the original project. " +
		"The destination project directory is initially empty and should be populated with project files in Rust language. " +
		"When you propose an action or a change to the source code, execute this action or change right away."
}

// GetAnalyzePrompt asks the model to study the source project first.
func GetAnalyzePrompt() string {
	return "Please analyze the project in the source directory, but don't make any changes at this point."
}

// GetConvertPrompt kicks off the actual conversion.
func GetConvertPrompt() string {
	return "Now create Rust project in the destination project directory so that it matches the implementation in the source project directory."
}

// GetFixPrompt feeds the compiler diagnostics back verbatim.
func GetFixPrompt(checkOutput string) string {
	return "Apparently there are some problems with the code. Please correct them. Here is the `cargo check` output:\n" + checkOutput
}
