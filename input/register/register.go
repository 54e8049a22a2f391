// Package register registers all input controller models.
package register

import (
	// for controllers.
	_ "go.viam.com/usercommand/input/evdev"
	_ "go.viam.com/usercommand/input/fake"
	_ "go.viam.com/usercommand/input/keyboard"
)
