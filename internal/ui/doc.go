// Package ui is the terminal front end for logbeacon, built on Bubble Tea.
//
// The screen has three parts:
//
//   - a two-line header with the status icon, the OK/ALERT badge, the
//     tooltip text, the scan interval, and the monitored path with its
//     scanned and acknowledged offsets;
//   - a scrollable preview of the last lines of the log, with marker
//     occurrences highlighted;
//   - a footer with key help, the last failed command, or the path/interval
//     prompt while one is open.
//
// The model never touches the watch state. It polls state.Store for
// snapshots on a short refresh tick and sends user actions to the scheduler
// through the Controller interface. Each action runs as a tea.Cmd with a
// bounded context so a stalled scheduler cannot freeze the screen.
//
// The alert icon alternates with the normal icon following the blink phase
// published by the scheduler. After an acknowledgment the preview is
// replaced by a short confirmation box for the configured popup duration.
//
// o opens the log file in $VISUAL, $EDITOR or $PAGER with the screen
// suspended; O reveals it in the desktop file manager.
//
// Themes (Nightfox, Kanagawa, Slate) cycle with T and the choice is saved
// through ThemeSaver.
package ui
