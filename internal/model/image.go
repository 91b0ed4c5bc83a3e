package model

// ImageTensor is a decoded, preprocessed image in planar CHW layout with
// values scaled to [0,1]. Owned by a single pipeline invocation; never
// shared across requests.
type ImageTensor struct {
	Data     []float32 // len = Channels*Width*Height
	Width    int
	Height   int
	Channels int
	// Source dimensions before resizing, used to map detections back to
	// original-image coordinates.
	SourceWidth  int
	SourceHeight int
}
