package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// graphQLRequest is the POST body of a GraphQL call.
type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage     `json:"data"`
	Errors []GraphQLErrorEntry `json:"errors"`
}

// GraphQL executes a query or mutation and decodes its data into out.
// A response carrying an errors array returns *GraphQLError even when some
// data came back.
func (c *Client) GraphQL(ctx context.Context, query string, vars map[string]interface{}, out interface{}) error {
	respBody, _, err := c.doRequest(ctx, http.MethodPost, c.GraphQLURL, graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return err
	}

	var resp graphQLResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return fmt.Errorf("failed to parse graphql response: %w", err)
	}
	if len(resp.Errors) > 0 {
		return &GraphQLError{Errors: resp.Errors}
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to decode graphql data: %w", err)
	}
	return nil
}

const projectItemsQuery = `
query($owner: String!, $repo: String!, $number: Int!, $first: Int!) {
  repository(owner: $owner, name: $repo) {
    issue(number: $number) {
      id
      projectItems(first: $first) {
        nodes {
          id
          project {
            ... on ProjectV2 {
              id
              number
            }
          }
        }
      }
    }
  }
}`

// FetchProjectItems lists the project items an issue belongs to. A missing
// issue returns (nil, nil).
func (c *Client) FetchProjectItems(ctx context.Context, number int) ([]ProjectItem, error) {
	var data struct {
		Repository struct {
			Issue *struct {
				ID           string `json:"id"`
				ProjectItems struct {
					Nodes []struct {
						ID      string `json:"id"`
						Project *struct {
							ID     string `json:"id"`
							Number int    `json:"number"`
						} `json:"project"`
					} `json:"nodes"`
				} `json:"projectItems"`
			} `json:"issue"`
		} `json:"repository"`
	}
	vars := map[string]interface{}{
		"owner":  c.Owner,
		"repo":   c.Repo,
		"number": number,
		"first":  ProjectItemsPageSize,
	}
	if err := c.GraphQL(ctx, projectItemsQuery, vars, &data); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch project items for issue #%d: %w", number, err)
	}
	if data.Repository.Issue == nil {
		return nil, nil
	}

	var items []ProjectItem
	for _, n := range data.Repository.Issue.ProjectItems.Nodes {
		if n.Project == nil || n.Project.ID == "" {
			continue
		}
		items = append(items, ProjectItem{ID: n.ID, ProjectID: n.Project.ID, ProjectNumber: n.Project.Number})
	}
	return items, nil
}

const fieldValuesQuery = `
query($itemId: ID!, $first: Int!) {
  node(id: $itemId) {
    ... on ProjectV2Item {
      fieldValues(first: $first) {
        nodes {
          __typename
          ... on ProjectV2ItemFieldNumberValue {
            number
            field { ... on ProjectV2FieldCommon { id name } }
          }
          ... on ProjectV2ItemFieldSingleSelectValue {
            optionId
            name
            field { ... on ProjectV2FieldCommon { id name } }
          }
        }
      }
    }
  }
}`

// FetchFieldValues reads the number and single-select values set on a
// project item. Unset fields are simply absent.
func (c *Client) FetchFieldValues(ctx context.Context, itemID string) ([]FieldValue, error) {
	var data struct {
		Node *struct {
			FieldValues struct {
				Nodes []struct {
					Typename string   `json:"__typename"`
					Number   *float64 `json:"number"`
					OptionID string   `json:"optionId"`
					Name     string   `json:"name"`
					Field    *struct {
						ID   string `json:"id"`
						Name string `json:"name"`
					} `json:"field"`
				} `json:"nodes"`
			} `json:"fieldValues"`
		} `json:"node"`
	}
	vars := map[string]interface{}{"itemId": itemID, "first": FieldValuesPageSize}
	if err := c.GraphQL(ctx, fieldValuesQuery, vars, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch field values for item %s: %w", itemID, err)
	}
	if data.Node == nil {
		return nil, nil
	}

	var values []FieldValue
	for _, n := range data.Node.FieldValues.Nodes {
		if n.Field == nil || n.Field.ID == "" {
			continue
		}
		switch n.Typename {
		case "ProjectV2ItemFieldNumberValue":
			if n.Number == nil {
				continue
			}
			values = append(values, FieldValue{
				FieldID:   n.Field.ID,
				FieldName: n.Field.Name,
				Kind:      FieldValueNumber,
				Number:    *n.Number,
			})
		case "ProjectV2ItemFieldSingleSelectValue":
			if n.OptionID == "" {
				continue
			}
			values = append(values, FieldValue{
				FieldID:   n.Field.ID,
				FieldName: n.Field.Name,
				Kind:      FieldValueSingleSelect,
				OptionID:  n.OptionID,
				Name:      n.Name,
			})
		}
	}
	return values, nil
}

const updateSingleSelectMutation = `
mutation($projectId: ID!, $itemId: ID!, $fieldId: ID!, $optionId: String!) {
  updateProjectV2ItemFieldValue(
    input: {projectId: $projectId, itemId: $itemId, fieldId: $fieldId, value: {singleSelectOptionId: $optionId}}
  ) {
    projectV2Item { id }
  }
}`

const updateNumberMutation = `
mutation($projectId: ID!, $itemId: ID!, $fieldId: ID!, $value: Float!) {
  updateProjectV2ItemFieldValue(
    input: {projectId: $projectId, itemId: $itemId, fieldId: $fieldId, value: {number: $value}}
  ) {
    projectV2Item { id }
  }
}`

// UpdateSingleSelect sets a single-select field on a project item.
func (c *Client) UpdateSingleSelect(ctx context.Context, projectID, itemID, fieldID, optionID string) error {
	vars := map[string]interface{}{
		"projectId": projectID,
		"itemId":    itemID,
		"fieldId":   fieldID,
		"optionId":  optionID,
	}
	if err := c.GraphQL(ctx, updateSingleSelectMutation, vars, nil); err != nil {
		return fmt.Errorf("failed to set field %s on item %s: %w", fieldID, itemID, err)
	}
	return nil
}

// UpdateNumber sets a number field on a project item.
func (c *Client) UpdateNumber(ctx context.Context, projectID, itemID, fieldID string, value float64) error {
	vars := map[string]interface{}{
		"projectId": projectID,
		"itemId":    itemID,
		"fieldId":   fieldID,
		"value":     value,
	}
	if err := c.GraphQL(ctx, updateNumberMutation, vars, nil); err != nil {
		return fmt.Errorf("failed to set field %s on item %s: %w", fieldID, itemID, err)
	}
	return nil
}
