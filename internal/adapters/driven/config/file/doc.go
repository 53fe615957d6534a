// Package file provides a TOML-based implementation of the config store.
// Values absent from the file fall back to the defaults, so a partial
// configuration file is valid.
package file
