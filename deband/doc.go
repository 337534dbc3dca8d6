// Package deband assembles banding-removal pipelines as lazy clip graphs.
//
// Two debander backends drive external plugin filters through graph nodes:
//
//	F3kdb    flash3kyuu_deband (or its neo fork), integer clips 8..16 bit
//	Placebo  libplacebo's deband shader, one node per plane group
//
// Both satisfy the Debander interface, so the multi-stage recipes can run
// on either. The recipes compose the backends with prefilters, limiting,
// scaling and masking:
//
//	Recipe          Strategy
//	--------------  -----------------------------------------------------
//	Dumb3kdb        single F3kdb pass
//	PlaceboDeband   single Placebo pass
//	F3kBilateral    three F3kdb stages, coarse to fine, limited blend
//	MDBBilateral    three stages through any Debander, limited blend
//	F3kPF           blur prefilter, deband the blur, restore the detail
//	PFDeband        pluggable prefilter variant of F3kPF
//	LFDeband        deband at reduced resolution, upscale the correction
//	Guided          guided-filter smoothing with edge mask protection
//
// Multi-stage recipes promote the clip to 16 bit, process, and restore the
// caller's depth. All constructors validate their inputs before creating
// any node; a failed call leaves the graph untouched.
package deband
