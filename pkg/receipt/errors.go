package receipt

import "errors"

// ErrDecodeImage is returned when the input buffer is not a decodable image.
// This is the only fatal pipeline error; everything downstream degrades
// softly.
var ErrDecodeImage = errors.New("input is not a decodable image")
