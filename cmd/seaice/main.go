// Command seaice is a command-line interface for the sea-ice dynamics solver.
package main

import (
	"github.com/sirupsen/logrus"
)

func main() {
	if err := Root.Execute(); err != nil {
		logrus.Fatal(err)
	}
}
