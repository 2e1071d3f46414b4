package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/psantana5/leadtime/cmd/leadtime/cmd"
	"github.com/psantana5/leadtime/pkg/models"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode separates bad input (2) and too little data (3) from other failures
func exitCode(err error) int {
	var malformed *models.MalformedInputError
	var insufficient *models.InsufficientDataError
	switch {
	case errors.As(err, &malformed):
		return 2
	case errors.As(err, &insufficient):
		return 3
	default:
		return 1
	}
}
