// Package services implements the driving port interfaces. The ingest,
// answer, evaluation and admin services hold the pipeline logic and
// orchestrate calls to driven ports; they never talk to Postgres, object
// storage or the inference endpoint directly.
package services
