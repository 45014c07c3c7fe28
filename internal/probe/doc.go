// Package probe provides ffprobe-based media inspection. A single JSON call
// per file yields the container duration and the dimensions of the first
// video stream, which is all a contact sheet needs.
//
// Errors are classified with sentinels so callers can report the cause:
// [ErrNotFound], [ErrProbeTool] (see [ToolError]), [ErrParse], and
// [ErrNoVideoStream].
package probe
