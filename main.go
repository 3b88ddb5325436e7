// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/minicrates/minicrates/cmd/minicrates"

func main() {
	cmd.Execute()
}
