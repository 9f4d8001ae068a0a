// Package prompt implements console interaction for review sessions: the
// Prompter contract, a terminal implementation, and the selection grammar
// used to pick duplicate-group members.
package prompt
