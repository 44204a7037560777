package archive

// Package archive extracts downloaded patch archives into the unpack
// directory. The format is detected from the filename extension; 7z is the
// format the patch server historically serves, zip and compressed tarballs
// are accepted as well.
