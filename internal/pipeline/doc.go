// Package pipeline turns parsed orders into classified delivery records.
//
// The stages always run in the same order:
//
//	drop missing delivery -> raw lead time -> outlier cap -> classify
//
// Every stage is a pure function from one slice to a new slice. The outlier
// cap is a dataset-level statistic, so it is computed once over all retained
// rows before any row is classified. Running the pipeline again over its own
// cleaned output reproduces the same derived columns.
package pipeline
