// Package scaler resizes surfaces to fit a maximum dimension.
//
// Two paths sit behind the Scaler interface. SyncScaler resamples in the
// calling goroutine. WorkerScaler hands a private copy of the pixels to a
// bounded worker pool and waits for the new surface. Adaptive picks the
// worker for large surfaces and falls back to the synchronous path on any
// worker error, so a failed worker only shows up in the logs.
//
// Resampling is bilinear and never upscales. The new short side is
// round(short * maxDimension / long).
package scaler
