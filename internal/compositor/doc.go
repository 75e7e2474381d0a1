// Package compositor stacks the layers of a caption image.
//
// A Compositor holds a background photo, a rendered text layer and an
// optional subject mask. Composite draws them in a fixed order:
//
//  1. the background at full opacity
//  2. the text layer, source-over
//  3. the mask as a destination-out cutout, when text-behind is enabled
//
// The cutout multiplies the existing alpha by one minus the mask alpha, so
// antialiased mask edges carry through to the result. The subject itself is
// drawn back on top by the caller.
//
// RenderText produces the text layer from a TextStyle using the Go Regular
// font.
package compositor
