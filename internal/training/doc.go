// Package training builds labeled accuracy samples from time-stamped hints
// so matching quality can be measured offline against human ground truth.
package training
