//go:build !race

package auth

const defaultPasswordCost = 12

func passwordHashCost() int {
	return defaultPasswordCost
}
