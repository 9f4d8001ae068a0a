// Package ui implements the full-screen review interface built on
// [bubbletea]: playlist selection, duplicate-group and year passes with
// toggleable marks, and a confirmation gate before anything is removed.
package ui
