// Package classic is the tview frontend, selected with frontend = "classic".
//
// It renders the same dashboards as package ui with native tview widgets:
// dropdowns are tview.DropDown, graphs are text views filled with bar charts.
// Pressing q or ctrl+c runs the close path. A close request from another
// goroutine is queued with Application.QueueUpdate; the fallback posts a
// ctrl+c key event to the screen, which reaches the same input handler.
package classic
