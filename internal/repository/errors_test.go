package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDriverErrorSniffing(t *testing.T) {
	dup := errors.New("Error 1062 (23000): Duplicate entry 'drama' for key 'genres.uq_genres_name'")
	fk := errors.New("Error 1452 (23000): Cannot add or update a child row: a foreign key constraint fails (`filmlog`.`reviews`, CONSTRAINT `fk_reviews_film` FOREIGN KEY (`film_id`) REFERENCES `films` (`id`))")

	assert.True(t, isDuplicateKey(dup))
	assert.False(t, isDuplicateKey(fk))
	assert.False(t, isDuplicateKey(nil))

	assert.True(t, isForeignKeyViolation(fk))
	assert.False(t, isForeignKeyViolation(dup))
	assert.False(t, isForeignKeyViolation(nil))
}
