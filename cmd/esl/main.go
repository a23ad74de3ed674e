/*
Copyright © 2019 the ESL authors.
This file is part of ESL.

ESL is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ESL is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ESL.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command esl is a command-line interface for finding, combining and
// mapping extreme sea level datasets.
package main

import (
	"fmt"
	"os"

	"github.com/gesla/esl/eslutil"
)

func main() {
	if err := eslutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
