// Package batch partitions the input items of a run into fixed-size batches
// and processes them one batch at a time.
//
// Every item of a batch is started together and the next batch begins only
// once all of them have settled, after the configured inter-batch delay.
// Results keep the original item index regardless of completion order.
package batch
