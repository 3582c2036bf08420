// Command slate is the operator CLI for the Slate colony picking instrument.
// It starts and supervises picking runs, inspects the configured baseplate
// geometry, and verifies the instrument environment.
package main
