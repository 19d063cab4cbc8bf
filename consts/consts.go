package consts

// Version is the current release version. Overridden with ldflags at build time.
var Version = "dev"
