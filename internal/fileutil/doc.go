// Package fileutil provides directory-management utilities.
//
// EnsureDir and EnsureDirForFile create directories recursively. admitbench
// uses them to prepare its working directory and the parent directories of
// its simulated backing files.
package fileutil
