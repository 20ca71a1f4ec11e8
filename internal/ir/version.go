package ir

// EngineVersion is the tickseq release reported by --version.
const EngineVersion = "0.1.0"
