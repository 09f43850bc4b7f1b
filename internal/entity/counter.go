package entity

import "fmt"

type Counter struct {
	Clicks int `json:"clicks"`
}

func (that *Counter) Click() int {
	that.Clicks++
	return that.Clicks
}

func (that Counter) Label() string {
	return fmt.Sprintf("Click me %d", that.Clicks)
}
