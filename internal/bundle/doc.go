// Package bundle packs a job's outputs into one zip archive with a YAML
// manifest describing how they were produced.
package bundle
