// Package naming decides where a contact sheet is written.
//
// A sheet is named after its source video with a .jpg extension. It goes
// next to the source when the source path is absolute and into the working
// directory when it is relative. Within one batch run, [Claims] keeps two
// inputs from silently writing the same sheet.
package naming
