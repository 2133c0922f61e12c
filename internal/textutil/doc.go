// Package textutil sanitizes user-supplied names before they become paths
// in the staging directory or names of output bundles.
package textutil
