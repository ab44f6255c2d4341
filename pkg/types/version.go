package types

// Version is the casebook release version.
const Version = "v0.1.0"
