package cobalt

// Version is the engine version reported by the CLI.
const Version = "0.9.0"
