// Package sdf is the CPU reference of the scene evaluator that runs in the
// sdfplay fragment shader.
//
// Everything is computed in float32 to match WGSL f32. Scenes are plain
// functions built from the free-standing primitives ([Sphere], [Box],
// [Ocean]) and combinators ([Union], [Intersection], [Subtraction],
// [Repeat]). [March] sphere-traces a scene and returns [Miss] when the ray
// escapes; [Normal] and [Shade] turn a hit into a colour.
//
// [Render] shades a whole frame concurrently and is used both by the
// render command and as the oracle for GPU output.
package sdf
