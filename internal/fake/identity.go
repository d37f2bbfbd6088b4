package fake

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Identity is a generated throwaway persona users can hand to apps that
// demand personal details they do not want to give.
type Identity struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Street    string `json:"street"`
	City      string `json:"city"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
}

var firstNames = []string{
	"Alex", "Jordan", "Taylor", "Morgan", "Casey", "Riley", "Avery",
	"Quinn", "Rowan", "Sage", "Emerson", "Finley", "Harper", "Kendall",
	"Logan", "Parker", "Reese", "Skyler", "Dakota", "Elliott",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
	"Davis", "Martinez", "Lopez", "Wilson", "Anderson", "Thomas", "Moore",
	"Jackson", "Martin", "Lee", "Thompson", "White", "Harris",
}

var streets = []string{
	"Maple Street", "Oak Avenue", "Cedar Lane", "Pine Road", "Elm Drive",
	"Birch Boulevard", "Willow Way", "Aspen Court", "Juniper Place",
	"Chestnut Circle",
}

var cities = []string{
	"Springfield", "Riverton", "Fairview", "Lakewood", "Greenville",
	"Bristol", "Clinton", "Ashland", "Milton", "Dayton",
}

var mailDomains = []string{
	"mailinator.com", "example.org", "inbox.test", "tempmail.net",
}

// NewIdentity generates a random persona. Names and addresses are picked
// from fixed pools with crypto/rand so output is not guessable from time.
func NewIdentity() (*Identity, error) {
	first, err := pick(firstNames)
	if err != nil {
		return nil, err
	}
	last, err := pick(lastNames)
	if err != nil {
		return nil, err
	}
	street, err := pick(streets)
	if err != nil {
		return nil, err
	}
	city, err := pick(cities)
	if err != nil {
		return nil, err
	}
	domain, err := pick(mailDomains)
	if err != nil {
		return nil, err
	}

	houseNumber, err := randInt(9999)
	if err != nil {
		return nil, err
	}
	mailSuffix, err := randInt(10000)
	if err != nil {
		return nil, err
	}
	zip, err := randInt(100000)
	if err != nil {
		return nil, err
	}

	phone, err := randomPhone()
	if err != nil {
		return nil, err
	}

	return &Identity{
		FirstName: first,
		LastName:  last,
		Email: fmt.Sprintf("%s.%s%04d@%s",
			strings.ToLower(first), strings.ToLower(last), mailSuffix, domain),
		Phone:   phone,
		Street:  fmt.Sprintf("%d %s", houseNumber+1, street),
		City:    city,
		ZipCode: fmt.Sprintf("%05d", zip),
		Country: "US",
	}, nil
}

// randomPhone returns a number in the 555-01xx fictional range.
func randomPhone() (string, error) {
	area, err := randInt(800)
	if err != nil {
		return "", err
	}
	line, err := randInt(100)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("+1-%03d-555-01%02d", area+200, line), nil
}

func pick(pool []string) (string, error) {
	i, err := randInt(len(pool))
	if err != nil {
		return "", err
	}
	return pool[i], nil
}

func randInt(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random number: %w", err)
	}
	return int(n.Int64()), nil
}
