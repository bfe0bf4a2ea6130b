package queryplanner

// newFederationFixture builds the composed schema described in spec §8's
// scenario preamble: four services (accounts, product, reviews, books)
// contributing to User, the Product interface (Book/Furniture), Review,
// and Car. Used by planner_test.go, compare_test.go, schema_test.go, and
// operationcontext_test.go so those tests work against one consistent
// fixture.
func newFederationFixture() *Schema {
	stringType := &Scalar{Name: "String"}
	idType := &Scalar{Name: "ID"}
	intType := &Scalar{Name: "Int"}
	floatType := &Scalar{Name: "Float"}

	user := &Object{
		Name: "User",
		Keys: []KeySet{{Service: "accounts", Fields: []string{"id"}}},
	}
	review := &Object{Name: "Review"}
	book := &Object{
		Name: "Book",
		Keys: []KeySet{{Service: "books", Fields: []string{"isbn"}}},
	}
	furniture := &Object{Name: "Furniture"}
	car := &Object{
		Name: "Car",
		Keys: []KeySet{{Service: "reviews", Fields: []string{"id"}}},
	}

	product := &Interface{
		Name:          "Product",
		PossibleTypes: []*Object{book, furniture},
	}

	user.Fields = map[string]*Field{
		"id":              {Name: "id", Type: &NonNull{Type: idType}, Owner: "accounts"},
		"name":            {Name: "name", Type: stringType, Owner: "accounts"},
		"birthDate":       {Name: "birthDate", Type: stringType, Owner: "accounts"},
		"reviews":         {Name: "reviews", Type: &List{Type: review}, Owner: "reviews"},
		"numberOfReviews": {Name: "numberOfReviews", Type: intType, Owner: "reviews"},
	}

	review.Fields = map[string]*Field{
		"id":     {Name: "id", Type: &NonNull{Type: idType}, Owner: "reviews"},
		"body":   {Name: "body", Type: stringType, Owner: "reviews"},
		"author": {Name: "author", Type: user, Owner: "reviews"},
	}

	book.Fields = map[string]*Field{
		"isbn":  {Name: "isbn", Type: &NonNull{Type: idType}, Owner: "books"},
		"title": {Name: "title", Type: stringType, Owner: "books"},
		"year":  {Name: "year", Type: intType, Owner: "books"},
		"name":  {Name: "name", Type: stringType, Owner: "product", Requires: []string{"title", "year"}},
	}

	furniture.Fields = map[string]*Field{
		"name": {Name: "name", Type: stringType, Owner: "product"},
	}

	car.Fields = map[string]*Field{
		"id":          {Name: "id", Type: &NonNull{Type: idType}, Owner: "product"},
		"price":       {Name: "price", Type: floatType, Owner: "product"},
		"retailPrice": {Name: "retailPrice", Type: floatType, Owner: "reviews", Requires: []string{"price"}},
	}

	query := &Object{
		Name: "Query",
		Fields: map[string]*Field{
			"me":          {Name: "me", Type: user, Owner: "accounts"},
			"topProducts": {Name: "topProducts", Type: &List{Type: product}, Owner: "product"},
			"topReviews":  {Name: "topReviews", Type: &List{Type: review}, Owner: "reviews"},
			"topCars":     {Name: "topCars", Type: &List{Type: car}, Owner: "product"},
		},
	}

	mutation := &Object{
		Name: "Mutation",
		Fields: map[string]*Field{
			"addReview": {Name: "addReview", Type: review, Owner: "reviews"},
		},
	}

	types := map[string]Type{
		"User":      user,
		"Review":    review,
		"Book":      book,
		"Furniture": furniture,
		"Car":       car,
		"Product":   product,
		"Query":     query,
		"Mutation":  mutation,
		"String":    stringType,
		"ID":        idType,
		"Int":       intType,
		"Float":     floatType,
	}

	return &Schema{Query: query, Mutation: mutation, Types: types}
}
