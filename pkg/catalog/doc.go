// Package catalog defines the provider pricing catalog: the models each
// provider offers, their price per million tokens, and whether they are
// reasoning models.
package catalog
