// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// File: internal/client/vocabulary.go
// Package: client

package client

// Command names understood by the robot firmware. The transport sends any
// string; this list only drives help output and shell completion.
const (
	CmdConnect   = "CONNECT"
	CmdForward   = "FORWARD"
	CmdTurnRight = "TURN RIGHT"
	CmdTurnLeft  = "TURN LEFT"
	CmdKill      = "KILL"
	CmdStop      = "STOP"
	CmdMovie     = "MOVIE"
)

// VocabularyEntry pairs a command with a human description.
type VocabularyEntry struct {
	Command     string
	Description string
}

// Vocabulary is the conventional command set, in button order.
var Vocabulary = []VocabularyEntry{
	{CmdConnect, "Check that the device is listening"},
	{CmdForward, "Drive forward"},
	{CmdTurnRight, "Turn right in place"},
	{CmdTurnLeft, "Turn left in place"},
	{CmdKill, "Shut down the device program"},
	{CmdStop, "Stop all motors"},
	{CmdMovie, "Start the movie routine"},
}

// IsKnown reports whether cmd is part of Vocabulary.
func IsKnown(cmd string) bool {
	for _, v := range Vocabulary {
		if v.Command == cmd {
			return true
		}
	}
	return false
}
