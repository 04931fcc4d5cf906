// Package xmlstream provides a streaming XML event reader that yields a
// strictly ordered sequence of start-element, character-data and end-element
// events with line and column information. Comments, processing
// instructions and directives are dropped.
//
// The reader enforces well-formedness: mismatched tags and syntax errors are
// returned as *SyntaxError, and a stream that ends while elements are still
// open yields an error wrapping ErrUnexpectedEOF.
package xmlstream
