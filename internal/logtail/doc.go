// Package logtail reads the end of the monitored log for the terminal
// preview and splits lines around marker occurrences for highlighting.
//
// Read only looks at a bounded window at the end of the file, so a
// multi-gigabyte log costs the same to preview as a small one. Lines are kept
// in a ring buffer of maxLines entries and returned oldest first.
//
//	lines, err := logtail.Read("/var/log/backrest.log", 200)
//	for _, line := range lines {
//		for _, seg := range logtail.Split(line, marker) {
//			// style seg.Text, emphasising seg.Marker
//		}
//	}
//
// A missing file is not an error: the watcher treats it as a normal state
// and the preview simply shows nothing.
package logtail
