package domain

// DefaultKeyPrefix namespaces every storage key.
const DefaultKeyPrefix = "notegraph:"
