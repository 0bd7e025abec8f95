package types

// Version is the canonical project version.
// The CLI, the wire contract, and the session report share this version.
const Version = "0.4.0"
