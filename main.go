// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/llynx/llynx/cmd/llynx"

func main() {
	cmd.Execute()
}
