package espalier

// Version is the library version, also reported by the CLI and adapters.
const Version = "0.3.1"
