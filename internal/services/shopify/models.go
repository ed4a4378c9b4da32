package shopify

import "encoding/json"

// GraphQLRequest is the Admin API request envelope.
type GraphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// GraphQLResponse is the Admin API response envelope. Data stays raw so each
// operation can decode its own shape.
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

type GraphQLError struct {
	Message string `json:"message"`
}

// UserError is a field-level validation error returned inside mutation
// payloads rather than the top-level errors array.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

const nodesQuery = `
query Nodes($ids: [ID!]!) {
  nodes(ids: $ids) {
    __typename
    ... on ProductVariant {
      id
    }
  }
}`

const profileItemsQuery = `
query ProfileItems($id: ID!, $cursor: String) {
  deliveryProfile(id: $id) {
    id
    profileItems(first: 100, after: $cursor) {
      edges {
        cursor
        node {
          variants(first: 250) {
            edges { node { id } }
            pageInfo { hasNextPage }
          }
        }
      }
      pageInfo { hasNextPage }
    }
  }
}`

const deliveryProfileUpdateMutation = `
mutation deliveryProfileUpdate($id: ID!, $profile: DeliveryProfileInput!) {
  deliveryProfileUpdate(id: $id, profile: $profile) {
    profile { id }
    userErrors { field message }
  }
}`

type nodesPayload struct {
	Nodes []*struct {
		Typename string `json:"__typename"`
		ID       string `json:"id"`
	} `json:"nodes"`
}

type profileItemsPayload struct {
	DeliveryProfile *struct {
		ID           string `json:"id"`
		ProfileItems struct {
			Edges []struct {
				Cursor string `json:"cursor"`
				Node   struct {
					Variants struct {
						Edges []struct {
							Node struct {
								ID string `json:"id"`
							} `json:"node"`
						} `json:"edges"`
						PageInfo struct {
							HasNextPage bool `json:"hasNextPage"`
						} `json:"pageInfo"`
					} `json:"variants"`
				} `json:"node"`
			} `json:"edges"`
			PageInfo struct {
				HasNextPage bool `json:"hasNextPage"`
			} `json:"pageInfo"`
		} `json:"profileItems"`
	} `json:"deliveryProfile"`
}

type deliveryProfileUpdatePayload struct {
	DeliveryProfileUpdate struct {
		Profile *struct {
			ID string `json:"id"`
		} `json:"profile"`
		UserErrors []UserError `json:"userErrors"`
	} `json:"deliveryProfileUpdate"`
}
