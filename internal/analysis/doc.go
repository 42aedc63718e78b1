// Package analysis characterizes recorded parameter traces.
//
//   - [Spectrum]: one-sided magnitude spectrum of a trace
//   - [DominantFrequency]: strongest non-DC oscillation
//   - [Summarize]: range, mean, RMS and dominant frequency in one pass
//   - [Overshoot]: how far a step response passed its final value
//
// Traces are sampled at the render frame rate, so frequencies are limited
// to half of it:
//
//	hz, err := analysis.DominantFrequency(result.Series("ParamHairFront"), 60)
package analysis
