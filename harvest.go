// Package harvest provides a best-effort, breadth-first web content harvester.
// It crawls outward from a seed URL, extracts the text of HTML pages as
// markdown and of PDF documents as plain text, and stops at a depth and a
// page limit.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, htmltomarkdown/, sqlite/).
package harvest
